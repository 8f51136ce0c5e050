// Package main содержит точку входа CLI-клиента OralVis.
//
// Версия и дата сборки передаются через -ldflags:
//
//	go build -ldflags "-X main.buildVersion=1.0.0 -X main.buildDate=$(date +%F)" ./cmd/oralvis
package main

import "github.com/IvanChernomyrdin/go-oralvis/internal/agent/cli"

var (
	// buildVersion содержит версию приложения, передаваемую при сборке.
	buildVersion = "dev"
	// buildDate содержит дату сборки приложения.
	buildDate = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
