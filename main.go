package main

import "github.com/user/webpilot/cmd"

func main() {
	cmd.Execute()
}
