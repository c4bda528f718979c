// Package bills is the local catalog of bill records the client has seen.
//
// Search results, recommendations and saved bills are written here so that a
// bill can be shown by id later, including in a later run, without another
// round trip. The catalog is a cache: the backend stays the source of truth
// and the table may be cleared at any time.
//
// SQLiteRepository works over a dbx.DBTX. Batch writes need a *sql.DB because
// they run inside a transaction.
//
//	repo := bills.NewSQLiteRepository(db)
//	_ = repo.UpsertMany(ctx, found)
//	b, err := repo.GetByID(ctx, 42) // common.ErrorNotFound when unknown
package bills
