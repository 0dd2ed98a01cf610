package main

import "daytally/cmd"

func main() {
	cmd.Execute()
}
