package main

import (
	"fmt"
	"os"

	// Import to register the simulation
	_ "github.com/picogrid/tactical-retreat/cmd/tactical-retreat/simulation"
)

func main() {
	fmt.Println("Tactical Retreat simulation registered. Use 'retreat-sim run' to execute.")
	os.Exit(0)
}
