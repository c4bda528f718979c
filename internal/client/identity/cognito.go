package identity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/dmitrijs2005/billboard/internal/cryptox"
)

// cognitoAPI is the subset of the Cognito client used here. Tests swap in a fake.
type cognitoAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, in *cip.ResendConfirmationCodeInput, optFns ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
}

// CognitoConfig describes the user pool app client.
//
// ClientSecret is only needed for app clients created with a secret.
// Endpoint and the static AWS keys exist for local Cognito emulators; the
// real service accepts the public app-client calls unsigned.
type CognitoConfig struct {
	Region          string
	UserPoolID      string
	ClientID        string
	ClientSecret    string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Timeout         time.Duration
}

var ErrMissingClientID = errors.New("cognito client id is not configured")

// CognitoProvider implements Provider against an Amazon Cognito user pool.
type CognitoProvider struct {
	api          cognitoAPI
	clientID     string
	clientSecret string
	timeout      time.Duration
}

// NewCognitoProvider loads AWS configuration for cfg.Region and builds the
// Cognito client.
func NewCognitoProvider(ctx context.Context, cfg CognitoConfig) (*CognitoProvider, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}

	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if cfg.AccessKeyID != "" {
		creds = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(regionOf(cfg)),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := cip.NewFromConfig(awsCfg, func(o *cip.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newCognitoProvider(api, cfg), nil
}

// regionOf falls back to the region prefix of the pool id
// ("ca-central-1_AbCd" → "ca-central-1") when no region is configured.
func regionOf(cfg CognitoConfig) string {
	if cfg.Region != "" {
		return cfg.Region
	}
	region, _, _ := strings.Cut(cfg.UserPoolID, "_")
	return region
}

func newCognitoProvider(api cognitoAPI, cfg CognitoConfig) *CognitoProvider {
	return &CognitoProvider{
		api:          api,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		timeout:      cfg.Timeout,
	}
}

// secretHash computes SECRET_HASH for app clients that have a secret, nil
// otherwise.
func (p *CognitoProvider) secretHash(username string) *string {
	if p.clientSecret == "" {
		return nil
	}
	return aws.String(cryptox.SecretHash(username, p.clientID, p.clientSecret))
}

func (p *CognitoProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *CognitoProvider) Register(ctx context.Context, username, password string, attrs map[string]string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	userAttrs := make([]types.AttributeType, 0, len(names))
	for _, name := range names {
		userAttrs = append(userAttrs, types.AttributeType{Name: aws.String(name), Value: aws.String(attrs[name])})
	}

	_, err := p.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(p.clientID),
		Username:       aws.String(username),
		Password:       aws.String(password),
		UserAttributes: userAttrs,
		SecretHash:     p.secretHash(username),
	})
	return classify(err, cognitoKinds)
}

func (p *CognitoProvider) ConfirmRegistration(ctx context.Context, username, code string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	_, err := p.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		SecretHash:       p.secretHash(username),
	})
	return classify(err, cognitoKinds)
}

func (p *CognitoProvider) ResendConfirmationCode(ctx context.Context, username string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	_, err := p.api.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId:   aws.String(p.clientID),
		Username:   aws.String(username),
		SecretHash: p.secretHash(username),
	})
	return classify(err, cognitoKinds)
}

// Authenticate runs the USER_PASSWORD_AUTH flow. A response carrying a
// challenge instead of tokens (MFA, forced password change) is reported as
// KindChallengeRequired.
func (p *CognitoProvider) Authenticate(ctx context.Context, username, password string) (*Credential, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	params := map[string]string{
		"USERNAME": username,
		"PASSWORD": password,
	}
	if h := p.secretHash(username); h != nil {
		params["SECRET_HASH"] = *h
	}

	out, err := p.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(p.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return nil, classify(err, cognitoKinds)
	}

	if out.AuthenticationResult == nil || aws.ToString(out.AuthenticationResult.IdToken) == "" {
		return nil, &Error{Kind: KindChallengeRequired, Message: string(out.ChallengeName)}
	}

	res := out.AuthenticationResult
	cred := &Credential{
		IDToken:      aws.ToString(res.IdToken),
		AccessToken:  aws.ToString(res.AccessToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		ExpiresIn:    res.ExpiresIn,
	}

	claims, err := DecodeClaims(cred.IDToken)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: err}
	}
	cred.Claims = claims

	return cred, nil
}
