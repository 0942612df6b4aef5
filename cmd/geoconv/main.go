// Command geoconv converts time epochs and positions between the registered
// time scales, encodings, and coordinate systems from the command line.
package main

import "github.com/signalsfoundry/geodesy/internal/cli"

func main() {
	cli.Execute()
}
