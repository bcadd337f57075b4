package secretstore

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
)

// saltSecretName holds the hex salt of the sealing key next to the secrets it
// protects.
const saltSecretName = "__seal_salt"

// checkSecretName holds a known value sealed under the key, used to reject a
// wrong passphrase when the store is opened.
const checkSecretName = "__seal_check"

const checkValue = "docvault"

// ErrWrongPassphrase is returned by NewSealedStore when the passphrase does
// not open the existing secrets.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// SealedStore encrypts values before handing them to an inner Store. The
// secret name is bound as additional data, so a value copied under another
// name fails to open.
type SealedStore struct {
	inner Store
	key   []byte
}

// NewSealedStore derives the sealing key from passphrase and the salt kept in
// inner, generating and storing a fresh salt and verifier on first use. An
// existing verifier that does not open yields ErrWrongPassphrase.
func NewSealedStore(ctx context.Context, inner Store, passphrase []byte) (*SealedStore, error) {
	saltHex, ok, err := inner.Get(ctx, saltSecretName)
	if err != nil {
		return nil, err
	}

	var salt []byte
	if ok {
		salt, err = hex.DecodeString(saltHex)
		if err != nil {
			return nil, fmt.Errorf("%w: seal salt: %v", common.ErrCorruptSecret, err)
		}
	} else {
		salt = cryptox.NewSalt()
		if err := inner.Set(ctx, saltSecretName, hex.EncodeToString(salt)); err != nil {
			return nil, err
		}
	}

	s := &SealedStore{inner: inner, key: cryptox.DeriveKey(passphrase, salt)}

	check, ok, err := s.Get(ctx, checkSecretName)
	switch {
	case errors.Is(err, common.ErrCorruptSecret):
		return nil, ErrWrongPassphrase
	case err != nil:
		return nil, err
	case !ok:
		if err := s.Set(ctx, checkSecretName, checkValue); err != nil {
			return nil, err
		}
	case check != checkValue:
		return nil, ErrWrongPassphrase
	}

	return s, nil
}

func (s *SealedStore) Get(ctx context.Context, name string) (string, bool, error) {
	raw, ok, err := s.inner.Get(ctx, name)
	if err != nil || !ok {
		return "", ok, err
	}

	sealed, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %v", common.ErrCorruptSecret, name, err)
	}

	plain, err := cryptox.Open(s.key, sealed, []byte(name))
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %v", common.ErrCorruptSecret, name, err)
	}
	return string(plain), true, nil
}

func (s *SealedStore) Set(ctx context.Context, name, value string) error {
	enc, err := s.seal(name, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, name, enc)
}

func (s *SealedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *SealedStore) SetMany(ctx context.Context, values map[string]string) error {
	sealed := make(map[string]string, len(values))
	for name, value := range values {
		enc, err := s.seal(name, value)
		if err != nil {
			return err
		}
		sealed[name] = enc
	}
	return SetAll(ctx, s.inner, sealed)
}

func (s *SealedStore) DeleteMany(ctx context.Context, names ...string) error {
	return DeleteAll(ctx, s.inner, names...)
}

func (s *SealedStore) seal(name, value string) (string, error) {
	sealed, err := cryptox.Seal(s.key, []byte(value), []byte(name))
	if err != nil {
		return "", fmt.Errorf("seal %s: %w", name, err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
