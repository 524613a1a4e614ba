package main

import "github.com/stuttgart-things/sealer/cmd"

func main() {
	cmd.Execute()
}
