package main

import (
	"fmt"

	"github.com/mhollis/dispatchrpc/jsonrpc"
)

type Calculator struct{}

func (c *Calculator) Add(a, b float64, req *jsonrpc.Request) (interface{}, error) {
	return a + b, nil
}

func (c *Calculator) Div(a, b float64, req *jsonrpc.Request) (interface{}, error) {
	if b == 0 {
		return nil, jsonrpc.NewError(1, "division by zero")
	}
	return a / b, nil
}

func main() {
	d := &jsonrpc.Dispatcher{}
	calc := &Calculator{}

	requests := []string{
		`{"jsonrpc":"2.0","method":"Add","params":[2,3],"id":1}`,
		`{"jsonrpc":"2.0","method":"Div","params":[1,0],"id":2}`,
		`{"jsonrpc":"2.0","method":"Mul","params":[2,3],"id":3}`,
		`not even json`,
	}
	for _, body := range requests {
		fmt.Printf("-> %s\n<- %s\n", body, d.HandleRequest([]byte(body), calc))
	}
}
