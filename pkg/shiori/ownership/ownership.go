package ownership

import (
	"errors"

	"github.com/shioribako/shiori/pkg/shiori/models"
	"gorm.io/gorm"
)

var (
	// ErrOwnerNotFound means the supplied owner identity has no user record.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrForbidden means the resolved owner does not own the target resource.
	ErrForbidden = errors.New("owner mismatch")
)

// Owned is a resource that belongs to exactly one user.
type Owned interface {
	OwnerID() string
}

// ResolveOwner maps an external owner identity to the internal user
// record. Returns ErrOwnerNotFound when no such user exists.
func ResolveOwner(db *gorm.DB, supabaseID string) (*models.User, error) {
	var user models.User
	if err := db.Where("supabase_id = ?", supabaseID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Authorize checks that owner owns resource. Returns ErrForbidden on
// mismatch. Every mutation of a bookmark, category, or tag runs through
// this after ResolveOwner, so the three resources cannot drift apart.
func Authorize(owner *models.User, resource Owned) error {
	if resource.OwnerID() != owner.ID {
		return ErrForbidden
	}
	return nil
}
