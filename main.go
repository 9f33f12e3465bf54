package main

import (
	"math/rand"
	"runtime"
	"time"

	"github.com/luma/beacon/cmd"
)

func main() {
	rand.Seed(time.Now().UnixNano())

	runtime.GOMAXPROCS(128)

	cmd.Execute()
}
