// Command posort sorts the entries of a gettext PO/POT catalog in place.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
