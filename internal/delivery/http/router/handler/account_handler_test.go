package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"cinescope/internal/domain/entity"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/errors"
	"cinescope/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountUsecase struct {
	deleteFn          func(ctx context.Context, input *usecase.DeleteAccountInput) (*usecase.DeleteAccountOutput, error)
	reactivateFn      func(ctx context.Context, input *usecase.ReactivateAccountInput) error
	reEnableByEmailFn func(ctx context.Context, input *usecase.ReEnableAccountInput) error
}

func (f *fakeAccountUsecase) Delete(ctx context.Context, input *usecase.DeleteAccountInput) (*usecase.DeleteAccountOutput, error) {
	if f.deleteFn == nil {
		return nil, errors.New("unexpected Delete call")
	}

	return f.deleteFn(ctx, input)
}

func (f *fakeAccountUsecase) Reactivate(ctx context.Context, input *usecase.ReactivateAccountInput) error {
	if f.reactivateFn == nil {
		return errors.New("unexpected Reactivate call")
	}

	return f.reactivateFn(ctx, input)
}

func (f *fakeAccountUsecase) ReEnableByEmail(ctx context.Context, input *usecase.ReEnableAccountInput) error {
	if f.reEnableByEmailFn == nil {
		return errors.New("unexpected ReEnableByEmail call")
	}

	return f.reEnableByEmailFn(ctx, input)
}

func TestAccountHandler_Delete_MissingPassword(t *testing.T) {
	h := NewAccountHandler(&fakeAccountUsecase{}, discardLogger())
	c, _ := newJSONContext(t, `{}`)
	setClaims(c, &entity.TokenClaims{UID: "uid-1", Email: "ann@example.com"})

	err := h.Delete(c)

	assert.ErrorIs(t, err, domainerrors.ErrPasswordRequired)
}

func TestAccountHandler_Delete_OK(t *testing.T) {
	deadline := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	uc := &fakeAccountUsecase{
		deleteFn: func(_ context.Context, input *usecase.DeleteAccountInput) (*usecase.DeleteAccountOutput, error) {
			assert.Equal(t, "uid-1", input.Claims.UID)
			assert.Equal(t, "secret123", input.Password)

			return &usecase.DeleteAccountOutput{DeletionDate: deadline}, nil
		},
	}
	h := NewAccountHandler(uc, discardLogger())
	c, rec := newJSONContext(t, `{"password":"secret123"}`)
	setClaims(c, &entity.TokenClaims{UID: "uid-1", Email: "ann@example.com"})

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, deadline.Format(time.RFC3339), body["deletionDate"])
}

func TestAccountHandler_ReEnable_MissingEmail(t *testing.T) {
	h := NewAccountHandler(&fakeAccountUsecase{}, discardLogger())
	c, _ := newJSONContext(t, `{}`)

	err := h.ReEnable(c)

	assert.ErrorIs(t, err, domainerrors.ErrEmailRequired)
}
