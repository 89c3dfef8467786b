package main

import "github.com/ahaar/ahaar-cli/cmd/ahaar"

func main() {
	ahaar.Execute()
}
