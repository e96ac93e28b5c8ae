package main

import "github.com/rangosemfila/consumo/cmd"

func main() {
	cmd.Execute()
}
