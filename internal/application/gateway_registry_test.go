package application_test

import (
	"testing"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayRegistry(t *testing.T) {
	sim := mocks.NewMockGateway(t)
	sim.EXPECT().Name().Return(domain.GatewaySimulator)
	midtrans := mocks.NewMockGateway(t)
	midtrans.EXPECT().Name().Return(domain.GatewayMidtrans)

	registry, err := application.NewGatewayRegistry(domain.GatewayMidtrans, sim, midtrans)
	require.NoError(t, err)

	assert.Same(t, midtrans, registry.Default())

	got, err := registry.Get(domain.GatewaySimulator)
	require.NoError(t, err)
	assert.Same(t, sim, got)

	_, err = registry.Get("paypal")
	assert.ErrorIs(t, err, domain.ErrUnsupportedGateway)
}

func TestGatewayRegistry_DefaultMustBeRegistered(t *testing.T) {
	sim := mocks.NewMockGateway(t)
	sim.EXPECT().Name().Return(domain.GatewaySimulator)

	_, err := application.NewGatewayRegistry(domain.GatewayMidtrans, sim)
	assert.Error(t, err)
}
