// Package main is the entry point for Launchpad.
package main

func main() {
	Execute()
}
