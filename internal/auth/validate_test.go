package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentconsole/internal/policy"
)

func TestValidateProfile(t *testing.T) {
	ctx := context.Background()
	engine, err := policy.NewProfileEngine(ctx)
	require.NoError(t, err)

	errs, err := ValidateProfile(ctx, engine, Profile{Name: "Admin", Email: "admin@example.com"})
	require.NoError(t, err)
	assert.Nil(t, errs)

	errs, err = ValidateProfile(ctx, engine, Profile{Email: "admin"})
	require.NoError(t, err)
	assert.Equal(t, policy.FieldErrors{
		"name":  "Name is required",
		"email": "Please enter a valid email",
	}, errs)
}

func TestValidatePassword(t *testing.T) {
	ctx := context.Background()
	engine, err := policy.NewProfileEngine(ctx)
	require.NoError(t, err)

	errs, err := ValidatePassword(ctx, engine, PasswordChange{NewPassword: "abc"}, "abd")
	require.NoError(t, err)
	assert.Equal(t, policy.FieldErrors{
		"currentPassword": "Current password is required to change password",
		"newPassword":     "Password must be at least 6 characters",
		"confirmPassword": "Passwords do not match",
	}, errs)

	errs, err = ValidatePassword(ctx, engine, PasswordChange{CurrentPassword: "secret123", NewPassword: "hunter22"}, "hunter22")
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestProfileForm_Validate(t *testing.T) {
	ctx := context.Background()
	engine, err := policy.NewProfileEngine(ctx)
	require.NoError(t, err)

	errs, err := ProfileForm{Name: "Admin", Email: "admin@example.com"}.Validate(ctx, engine)
	require.NoError(t, err)
	assert.Nil(t, errs)

	errs, err = ProfileForm{Name: "Admin", Email: "admin@example.com", ConfirmPassword: "x"}.Validate(ctx, engine)
	require.NoError(t, err)
	assert.Contains(t, errs, "currentPassword")
	assert.Contains(t, errs, "confirmPassword")
}
