package main

import "github.com/hotdeskhq/deskctl/cmd/deskctl/cmd"

func main() {
	cmd.Execute()
}
