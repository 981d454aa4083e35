package document

import (
	"context"
	"time"

	"github.com/ar0311/identity-docstore/internal/domain"
)

// SetPasswordHash stores an already hashed password.
func (s *UserStore[K]) SetPasswordHash(ctx context.Context, user *domain.User[K], passwordHash string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

// GetPasswordHash returns the stored hash, "" when none is set.
func (s *UserStore[K]) GetPasswordHash(ctx context.Context, user *domain.User[K]) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}
	return user.PasswordHash, nil
}

// HasPassword reports whether a password hash is set.
func (s *UserStore[K]) HasPassword(ctx context.Context, user *domain.User[K]) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}
	return user.PasswordHash != "", nil
}

// SetSecurityStamp sets the stamp that invalidates issued credentials.
func (s *UserStore[K]) SetSecurityStamp(ctx context.Context, user *domain.User[K], stamp string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.SecurityStamp = stamp
	return nil
}

// GetSecurityStamp returns the current security stamp.
func (s *UserStore[K]) GetSecurityStamp(ctx context.Context, user *domain.User[K]) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}
	return user.SecurityStamp, nil
}

// SetEmail sets the email address as entered.
func (s *UserStore[K]) SetEmail(ctx context.Context, user *domain.User[K], email string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.Email = email
	return nil
}

// GetEmail returns the email address as entered.
func (s *UserStore[K]) GetEmail(ctx context.Context, user *domain.User[K]) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}
	return user.Email, nil
}

// GetEmailConfirmed reports whether the address has been confirmed.
func (s *UserStore[K]) GetEmailConfirmed(ctx context.Context, user *domain.User[K]) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}
	return user.EmailConfirmed, nil
}

// SetEmailConfirmed records whether the address has been confirmed.
func (s *UserStore[K]) SetEmailConfirmed(ctx context.Context, user *domain.User[K], confirmed bool) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.EmailConfirmed = confirmed
	return nil
}

// GetNormalizedEmail returns the lookup form used by FindByEmail.
func (s *UserStore[K]) GetNormalizedEmail(ctx context.Context, user *domain.User[K]) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}
	return user.NormalizedEmail, nil
}

// SetNormalizedEmail sets the lookup form used by FindByEmail.
func (s *UserStore[K]) SetNormalizedEmail(ctx context.Context, user *domain.User[K], normalizedEmail string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.NormalizedEmail = normalizedEmail
	return nil
}

// FindByEmail returns the first user whose normalized email matches exactly.
func (s *UserStore[K]) FindByEmail(ctx context.Context, normalizedEmail string) (*domain.User[K], error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.first(ctx, func(u *domain.User[K]) bool {
		return u.NormalizedEmail == normalizedEmail
	})
}

// SetPhoneNumber sets the phone number.
func (s *UserStore[K]) SetPhoneNumber(ctx context.Context, user *domain.User[K], phoneNumber string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.PhoneNumber = phoneNumber
	return nil
}

// GetPhoneNumber returns the phone number.
func (s *UserStore[K]) GetPhoneNumber(ctx context.Context, user *domain.User[K]) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}
	return user.PhoneNumber, nil
}

// GetPhoneNumberConfirmed reports whether the number has been confirmed.
func (s *UserStore[K]) GetPhoneNumberConfirmed(ctx context.Context, user *domain.User[K]) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}
	return user.PhoneNumberConfirmed, nil
}

// SetPhoneNumberConfirmed records whether the number has been confirmed.
func (s *UserStore[K]) SetPhoneNumberConfirmed(ctx context.Context, user *domain.User[K], confirmed bool) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.PhoneNumberConfirmed = confirmed
	return nil
}

// SetTwoFactorEnabled turns two-factor sign-in on or off.
func (s *UserStore[K]) SetTwoFactorEnabled(ctx context.Context, user *domain.User[K], enabled bool) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.TwoFactorEnabled = enabled
	return nil
}

// GetTwoFactorEnabled reports whether two-factor sign-in is on.
func (s *UserStore[K]) GetTwoFactorEnabled(ctx context.Context, user *domain.User[K]) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}
	return user.TwoFactorEnabled, nil
}

// GetLockoutEnd returns nil when the user has never been locked out.
func (s *UserStore[K]) GetLockoutEnd(ctx context.Context, user *domain.User[K]) (*time.Time, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return nil, err
	}
	if user.LockoutEnd == nil {
		return nil, nil
	}
	end := *user.LockoutEnd
	return &end, nil
}

// SetLockoutEnd sets or, with nil, clears the lockout end. Times are kept in UTC.
func (s *UserStore[K]) SetLockoutEnd(ctx context.Context, user *domain.User[K], lockoutEnd *time.Time) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	if lockoutEnd == nil {
		user.LockoutEnd = nil
		return nil
	}
	end := lockoutEnd.UTC()
	user.LockoutEnd = &end
	return nil
}

// IncrementAccessFailedCount bumps the counter and returns the new value.
func (s *UserStore[K]) IncrementAccessFailedCount(ctx context.Context, user *domain.User[K]) (int, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return 0, err
	}
	user.AccessFailedCount++
	return user.AccessFailedCount, nil
}

// ResetAccessFailedCount sets the failed access counter back to zero.
func (s *UserStore[K]) ResetAccessFailedCount(ctx context.Context, user *domain.User[K]) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.AccessFailedCount = 0
	return nil
}

// GetAccessFailedCount returns the failed access counter.
func (s *UserStore[K]) GetAccessFailedCount(ctx context.Context, user *domain.User[K]) (int, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return 0, err
	}
	return user.AccessFailedCount, nil
}

// GetLockoutEnabled reports whether the user can be locked out.
func (s *UserStore[K]) GetLockoutEnabled(ctx context.Context, user *domain.User[K]) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}
	return user.LockoutEnabled, nil
}

// SetLockoutEnabled sets whether the user can be locked out.
func (s *UserStore[K]) SetLockoutEnabled(ctx context.Context, user *domain.User[K], enabled bool) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	user.LockoutEnabled = enabled
	return nil
}
