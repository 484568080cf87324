package main

import "github.com/plateful/platesearch/cmd"

func main() {
	cmd.Execute()
}
