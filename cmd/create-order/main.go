package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"go-storefront/app"
	"go-storefront/config"
	"go-storefront/functions"
)

func main() {
	handler, err := newHandler()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize handler: %v", err))
	}
	lambda.Start(handler.HandleRequest)
}

func newHandler() (*functions.CreateOrderHandler, error) {
	cfg, err := config.Load(config.File())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// The function is the order creator; forwarding would call itself.
	a, err := app.New(ctx, cfg, app.Options{LocalOrders: true})
	if err != nil {
		return nil, err
	}
	return functions.NewCreateOrderHandler(a.Auth, a.Orders), nil
}
