package main

import "github.com/nokia/twampy/cmd/twamp/cmd"

func main() {
	cmd.Execute()
}
