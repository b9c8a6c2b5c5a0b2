package main

import (
	"github.com/corray333/backend-labs/storefront/internal/app/reconciler"
	"github.com/corray333/backend-labs/storefront/internal/config"
)

func main() {
	config.MustInit()
	reconciler.MustNewApp().Run()
}
