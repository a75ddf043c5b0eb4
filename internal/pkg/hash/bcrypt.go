package hash

import "golang.org/x/crypto/bcrypt"

// Bcrypt hashes with bcrypt after appending a server side pepper.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt hasher. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost, pepper: pepper}
}

func (h *Bcrypt) Hash(str string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(str+h.pepper), h.cost)
}

func (h *Bcrypt) Verify(hashed, str string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(str+h.pepper)) == nil
}
