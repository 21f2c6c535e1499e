package password

import (
	"errors"

	"github.com/alexedwards/argon2id"
	"github.com/buildtrack/buildtrack/internal/domain/services"
)

// Hasher stores passwords in the encoded $argon2id$ format.
type Hasher struct {
	params *argon2id.Params
}

var _ services.PasswordHasher = (*Hasher)(nil)

func NewDefault() *Hasher {
	return &Hasher{params: argon2id.DefaultParams}
}

func New(p *argon2id.Params) *Hasher { return &Hasher{params: p} }

func (h *Hasher) Hash(plain string) (string, error) {
	if h == nil || h.params == nil {
		return "", errors.New("argon2id params not set")
	}
	return argon2id.CreateHash(plain, h.params)
}

func (h *Hasher) Compare(plain, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plain, encodedHash)
}
