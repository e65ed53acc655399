package main

import "ipm-quickstart/cmd"

func main() {
	cmd.Execute()
}
