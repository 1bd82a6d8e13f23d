package main

import "github.com/Mohsinsiddi/wlminter/cmd"

func main() {
	cmd.Execute()
}
