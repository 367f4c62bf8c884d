package application

import (
	"fmt"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

// GatewayRegistry resolves the adapter recorded on a payment.
type GatewayRegistry struct {
	gateways    map[domain.GatewayName]Gateway
	defaultName domain.GatewayName
}

func NewGatewayRegistry(defaultName domain.GatewayName, gateways ...Gateway) (*GatewayRegistry, error) {
	r := &GatewayRegistry{
		gateways:    make(map[domain.GatewayName]Gateway, len(gateways)),
		defaultName: defaultName,
	}
	for _, gw := range gateways {
		r.gateways[gw.Name()] = gw
	}
	if _, ok := r.gateways[defaultName]; !ok {
		return nil, fmt.Errorf("default gateway %q is not registered", defaultName)
	}
	return r, nil
}

func (r *GatewayRegistry) Get(name domain.GatewayName) (Gateway, error) {
	gw, ok := r.gateways[name]
	if !ok {
		return nil, domain.NewUnsupportedGatewayError(name)
	}
	return gw, nil
}

func (r *GatewayRegistry) Default() Gateway {
	return r.gateways[r.defaultName]
}
