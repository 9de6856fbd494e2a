// Command fortisctl runs ledger operations against the configured store from
// the command line.
package main

func main() {
	Execute()
}
