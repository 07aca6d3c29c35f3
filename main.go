package main

import "github.com/pcastillom/presencia/cmd"

func main() {
	cmd.Execute()
}
