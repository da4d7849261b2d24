package main

import "hrportal/internal/app/server"

func main() {
	server.Run()
}
