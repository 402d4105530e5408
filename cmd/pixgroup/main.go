package main

import "github.com/MeKo-Tech/pixgroup/cmd/pixgroup/cmd"

func main() {
	cmd.Execute()
}
