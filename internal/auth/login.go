package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/models"
)

var ErrWrongPassphrase = errors.New("wrong owner passphrase")

// OwnerID is the identity carried by owner tokens. The owner operates the
// shop and is not a registered user record.
const OwnerID = "owner"

// UserLookup is the subset of the record store the authenticator needs.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Authenticator exchanges credentials for signed role tokens. Users log in
// with their owner-issued ID; the owner logs in with a passphrase checked
// against a bcrypt hash.
type Authenticator struct {
	users         UserLookup
	tokens        *TokenManager
	ownerPassHash []byte
}

// NewAuthenticator creates an authenticator backed by the given user
// lookup and token manager. ownerPassHash is the bcrypt hash of the owner
// passphrase.
func NewAuthenticator(users UserLookup, tokens *TokenManager, ownerPassHash string) *Authenticator {
	return &Authenticator{
		users:         users,
		tokens:        tokens,
		ownerPassHash: []byte(ownerPassHash),
	}
}

// LoginUser validates an owner-issued user ID and mints a token carrying
// that user's role.
func (a *Authenticator) LoginUser(ctx context.Context, userID string) (string, *Token, error) {
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", nil, apperr.NotFound("user ID not found, contact owner: %s", userID)
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	tok := &Token{UserID: user.ID, Role: user.Role}
	signed, err := a.tokens.Generate(tok.UserID, tok.Role)
	if err != nil {
		return "", nil, err
	}
	return signed, tok, nil
}

// LoginOwner checks the passphrase against the configured bcrypt hash and
// mints an owner token.
func (a *Authenticator) LoginOwner(passphrase string) (string, *Token, error) {
	if err := bcrypt.CompareHashAndPassword(a.ownerPassHash, []byte(passphrase)); err != nil {
		return "", nil, ErrWrongPassphrase
	}

	tok := &Token{UserID: OwnerID, Role: models.RoleOwner}
	signed, err := a.tokens.Generate(tok.UserID, tok.Role)
	if err != nil {
		return "", nil, err
	}
	return signed, tok, nil
}

// HashPassphrase returns the bcrypt hash of a passphrase. Used by
// deployment tooling to produce OWNER_PASSPHRASE_HASH.
func HashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passphrase: %w", err)
	}
	return string(hash), nil
}
