package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rawbytedev/cowbuf"
)

func main() {
	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()
	f, err := os.Create("mem.prof")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	runtime.MemProfileRate = 1

	chunk := []byte("0123456789abcdef0123456789abcdef")
	for i := 0; i < 10000; i++ {
		s := cowbuf.FromBytes(chunk, cowbuf.Options{})
		for j := 0; j < 16; j++ {
			cp := s.Copy()
			cp.Append(chunk)
			cp.Release()
		}
		s.Release()
	}

	runtime.GC()
	pprof.WriteHeapProfile(f)
	time.Sleep(5 * time.Minute)
}
