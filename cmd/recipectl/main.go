// Command recipectl is the terminal client for a recipe-share server.
package main

import "github.com/sakif/recipe-share/cmd/recipectl/command"

func main() {
	command.Execute()
}
