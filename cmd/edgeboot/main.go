package main

import (
	"os"

	"github.com/osvaldoandrade/edgeboot/pkg/edgeboot"
)

func main() {
	os.Exit(edgeboot.Execute())
}
