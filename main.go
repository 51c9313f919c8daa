package main

import "github.com/alexiusacademia/gobem/cmd"

func main() {
	cmd.Execute()
}
