package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/billboard/internal/client/client"
	"github.com/dmitrijs2005/billboard/internal/client/models"
	"github.com/dmitrijs2005/billboard/internal/common"
)

// describeError turns a service error into a line for the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "Bill Board is unavailable right now. Try again later."
	case errors.Is(err, client.ErrUnauthorized):
		return "Your session has expired. Please 'login' again."
	case errors.Is(err, common.ErrNotSignedIn):
		return "Please 'login' first."
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, client.ErrNotFound):
		return "Not found."
	default:
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			return apiErr.Detail
		}
		return err.Error()
	}
}

func (a *App) report(ctx context.Context, what string, err error) error {
	a.log.Debug(ctx, what+" failed", "error", err)
	fmt.Fprintln(a.out, describeError(err))
	return err
}

func (a *App) printBills(bills []models.Bill) {
	if len(bills) == 0 {
		fmt.Fprintln(a.out, "No bills found.")
		return
	}
	for _, b := range bills {
		mark := " "
		if a.saved.IsSaved(b.ID) {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %6d  %s\n", mark, b.ID, b)
	}
}

func parseBillID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: bill id required", common.ErrorValidation)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid bill id %q", common.ErrorValidation, args[0])
	}
	return id, nil
}

// Recommend prints recommendations for the signed-in user, or for the public
// profile named in args.
func (a *App) Recommend(ctx context.Context, args []string) error {
	var (
		recs []models.Bill
		err  error
	)
	if len(args) > 0 {
		recs, err = a.bills.RecommendationsFor(ctx, args[0], a.config.RecommendationsLimit)
	} else {
		recs, err = a.bills.MyRecommendations(ctx, a.config.RecommendationsLimit)
	}
	if err != nil {
		return a.report(ctx, "recommend", err)
	}
	a.printBills(recs)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		var err error
		if query, err = getSimpleText(a.reader, "Search bills", a.out); err != nil {
			return err
		}
	}

	found, err := a.bills.Search(ctx, query, a.config.SearchLimit)
	if err != nil {
		return a.report(ctx, "search", err)
	}
	a.printBills(found)
	return nil
}

func (a *App) Profiles(ctx context.Context) error {
	names, err := a.bills.Profiles(ctx)
	if err != nil {
		return a.report(ctx, "profiles", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(a.out, "No profiles yet.")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(a.out, n)
	}
	return nil
}

// Profile prints the public profile named in args.
func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: profile <username>")
		return fmt.Errorf("%w: username required", common.ErrorValidation)
	}

	p, err := a.bills.Profile(ctx, args[0])
	if err != nil {
		return a.report(ctx, "profile", err)
	}

	fmt.Fprintln(a.out, p.Name)
	if len(p.Interests) > 0 {
		fmt.Fprintf(a.out, "Interests: %s\n", strings.Join(p.Interests, ", "))
	}
	keys := make([]string, 0, len(p.Demographics))
	for k, v := range p.Demographics {
		if v != nil && fmt.Sprint(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %s: %v\n", k, p.Demographics[k])
	}
	return nil
}

// Saved prints the saved bills, most recently saved first.
func (a *App) Saved(_ context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please 'login' first.")
		return nil
	}
	a.printBills(a.saved.SavedBills())
	return nil
}

// Save toggles the saved state of a bill.
func (a *App) Save(ctx context.Context, args []string) error {
	id, err := parseBillID(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: save <id>")
		return err
	}
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please 'login' first.")
		return nil
	}

	bill, found := a.lookupBill(ctx, id)
	if err := a.saved.ToggleSave(ctx, bill); err != nil {
		return a.report(ctx, "save", err)
	}
	if !found && a.saved.IsSaved(id) {
		// only the server has the record
		if err := a.saved.Refresh(ctx); err != nil {
			a.log.Warn(ctx, "reload saved bills", "bill_id", id, "error", err)
		}
	}
	if a.saved.IsSaved(id) {
		fmt.Fprintf(a.out, "Saved %s.\n", bill.Label())
	} else {
		fmt.Fprintf(a.out, "Removed %s from saved.\n", bill.Label())
	}
	return nil
}

// lookupBill finds the record for id in the saved list, then in the local
// catalog. When neither has it a bare record is returned with found false.
func (a *App) lookupBill(ctx context.Context, id int64) (models.Bill, bool) {
	for _, b := range a.saved.SavedBills() {
		if b.ID == id {
			return b, true
		}
	}
	if known, err := a.bills.Get(ctx, id); err == nil {
		return *known, true
	}
	return models.Bill{ID: id}, false
}

// Show prints a bill seen earlier.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseBillID(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: show <id>")
		return err
	}

	b, err := a.bills.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Fprintf(a.out, "Bill %d has not been seen yet. Try 'search' or 'recommend' first.\n", id)
			return nil
		}
		return a.report(ctx, "show", err)
	}

	fmt.Fprintf(a.out, "%s  %s\n", b.Label(), b.Title)
	if a.saved.IsSaved(b.ID) {
		fmt.Fprintln(a.out, "(saved)")
	}
	if b.Summary != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, b.Summary)
	}
	return nil
}

// Recent prints the bills seen most recently, from the local catalog.
func (a *App) Recent(ctx context.Context) error {
	recent, err := a.bills.Recent(ctx, 10)
	if err != nil {
		return a.report(ctx, "recent", err)
	}
	a.printBills(recent)
	return nil
}

func (a *App) Health(ctx context.Context) error {
	h, err := a.bills.Health(ctx)
	if err != nil {
		a.setMode(ModeOffline)
		return a.report(ctx, "health", err)
	}
	a.setMode(ModeOnline)

	fmt.Fprintf(a.out, "status: %s\n", h.Status)
	names := make([]string, 0, len(h.Checks))
	for n := range h.Checks {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := h.Checks[n]
		state := "ok"
		if !c.OK {
			state = "failing"
			if c.Error != "" {
				state += ": " + c.Error
			}
		}
		fmt.Fprintf(a.out, "  %-10s %s\n", n, state)
	}
	return nil
}
