package property

import (
	"context"
	"testing"

	"nursesrent/database/repository/memory"
	"nursesrent/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateProperty(t *testing.T) {
	svc := NewPropertyService(memory.New().Properties(), zap.NewNop())
	ctx := context.Background()

	p, err := svc.Create(ctx, "h1", Input{Title: "  Harbor loft ", Price: 1200})
	require.NoError(t, err)
	assert.Equal(t, "Harbor loft", p.Title)
	assert.Equal(t, 1, p.MinimumDuration)
	assert.True(t, p.IsAvailable)
	assert.True(t, p.IsActive)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "h1", got.Host)

	list, err := svc.ListByHost(ctx, "h1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreatePropertyValidation(t *testing.T) {
	svc := NewPropertyService(memory.New().Properties(), zap.NewNop())

	tests := []struct {
		name string
		in   Input
	}{
		{"missing title", Input{Price: 10}},
		{"zero price", Input{Title: "x"}},
		{"duration too long", Input{Title: "x", Price: 10, MinimumDuration: 4}},
		{"negative duration", Input{Title: "x", Price: 10, MinimumDuration: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "h1", tt.in)
			assert.True(t, utils.IsKind(err, utils.KindValidation))
		})
	}
}

func TestGetMissingProperty(t *testing.T) {
	svc := NewPropertyService(memory.New().Properties(), zap.NewNop())
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
