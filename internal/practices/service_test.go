package practices

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/connectient/pkg/apperrors"
)

type failingRepository struct{}

func (failingRepository) ListByCode(context.Context, string) ([]Practice, error) {
	return nil, errors.New("db down")
}

func (failingRepository) ListByID(context.Context, *string) ([]Practice, error) {
	return nil, errors.New("db down")
}

func TestServiceByCodeAppliesDefaultLogo(t *testing.T) {
	svc := NewService(NewInMemoryRepository(Practice{ID: "p-1", Code: "smile", Name: "Smile Dental"}), nil, nil)

	rows, err := svc.ByCode(context.Background(), "smile")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, DefaultLogo, rows[0].Logo)
}

func TestServiceByCodeUnknownReturnsEmpty(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil)

	rows, err := svc.ByCode(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceByIDNil(t *testing.T) {
	svc := NewService(NewInMemoryRepository(Practice{ID: "p-1"}), nil, nil)

	rows, err := svc.ByID(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceResolveNotFound(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil)

	_, err := svc.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.NotFound)
}

func TestServiceWrapsBackendErrorsAsLookup(t *testing.T) {
	svc := NewService(failingRepository{}, nil, nil)

	_, err := svc.ByCode(context.Background(), "smile")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.Lookup)
	assert.Equal(t, "failed to find practice", apperrors.MessageOf(err, ""))
}

func TestContactPhoneFallback(t *testing.T) {
	var p *Practice
	assert.Equal(t, "+1868", p.ContactPhone("+1868"))
	assert.Equal(t, "555", (&Practice{Phone: "555"}).ContactPhone("+1868"))
}
