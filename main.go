package main

import "github.com/satriadp/hadirku/cmd"

func main() {
	cmd.Execute()
}
