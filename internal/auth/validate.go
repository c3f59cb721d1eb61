package auth

import (
	"context"

	"github.com/samber/lo"

	"github.com/kazz187/agentconsole/internal/policy"
)

// ProfileForm is the profile screen: details and an optional password change.
type ProfileForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

var passwordFields = []string{"currentPassword", "newPassword", "confirmPassword"}

func (f ProfileForm) Validate(ctx context.Context, engine *policy.Engine) (policy.FieldErrors, error) {
	return engine.Check(ctx, f)
}

// ValidateProfile checks the details half of the form.
func ValidateProfile(ctx context.Context, engine *policy.Engine, p Profile) (policy.FieldErrors, error) {
	return ProfileForm{Name: p.Name, Email: p.Email}.Validate(ctx, engine)
}

// ValidatePassword checks a password change together with its confirmation.
func ValidatePassword(ctx context.Context, engine *policy.Engine, p PasswordChange, confirm string) (policy.FieldErrors, error) {
	errs, err := ProfileForm{
		CurrentPassword: p.CurrentPassword,
		NewPassword:     p.NewPassword,
		ConfirmPassword: confirm,
	}.Validate(ctx, engine)
	if err != nil {
		return nil, err
	}
	errs = lo.PickByKeys(errs, passwordFields)
	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}
