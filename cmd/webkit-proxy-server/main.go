package main

import "github.com/oshokin/webkit-proxy/cmd/webkit-proxy-server/cmd"

func main() {
	cmd.Execute()
}
