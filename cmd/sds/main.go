package main

import "github.com/spectriclabs/ndt-readers/internal/app"

func main() {
	app.Run()
}
