package main

import "github.com/oshokin/webkit-proxy/cmd/webkit-proxy/cmd"

func main() {
	cmd.Execute()
}
