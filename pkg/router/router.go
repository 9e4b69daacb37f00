package router

import (
	"github.com/paperscan/paperscan/pkg/provider"
)

type Route struct {
	Name string

	Completer provider.Completer
}
