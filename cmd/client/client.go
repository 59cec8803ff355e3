// Command client is a manual debug tool for talking to a running vantage
// server: it sends one request over a plain TCP connection using the
// server's HTTP-shaped wire format, and prints whatever response comes
// back.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"time"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the vantage server")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel', 'depth', 'status']")

	symbol := flag.String("symbol", "AAPL", "instrument symbol")
	sideStr := flag.String("side", "buy", "order side: 'buy' or 'sell'")
	typeStr := flag.String("type", "limit", "order type: 'limit' or 'market'")
	price := flag.Int64("price", 0, "limit price, already scaled to the instrument's price units")
	qty := flag.Int64("qty", 10, "order quantity")
	id := flag.Int64("id", 0, "order id (compulsory for place and cancel)")
	levels := flag.Int("levels", 5, "depth levels to request")

	flag.Parse()

	if *id == 0 && (*action == "place" || *action == "cancel") {
		fmt.Println("Error: -id is compulsory for place and cancel.")
		flag.Usage()
		log.Fatal("missing -id")
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()

	var req string
	switch strings.ToLower(*action) {
	case "place":
		side := 1
		if strings.ToLower(*sideStr) == "sell" {
			side = -1
		}
		typ := 2
		if strings.ToLower(*typeStr) == "limit" {
			typ = 1
		}
		body := fmt.Sprintf(
			`{"id":%d,"symbol":"%s","side":%d,"type":%d,"price":%d,"qty":%d}`,
			*id, *symbol, side, typ, *price, *qty,
		)
		req = buildRequest("POST", "/orders", body)
		fmt.Printf("-> Placing %s %s order: %s %d @ %d\n", strings.ToUpper(*typeStr), strings.ToUpper(*sideStr), *symbol, *qty, *price)

	case "cancel":
		body := fmt.Sprintf(`{"id":%d}`, *id)
		req = buildRequest("DELETE", "/orders", body)
		fmt.Printf("-> Cancelling order %d\n", *id)

	case "depth":
		path := fmt.Sprintf("/depth?symbol=%s&levels=%d", *symbol, *levels)
		req = buildRequest("GET", path, "")

	case "status":
		req = buildRequest("GET", "/status", "")

	default:
		log.Fatalf("Unknown action: %s", *action)
	}

	if _, err := conn.Write([]byte(req)); err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	resp, err := io.ReadAll(conn)
	if err != nil && len(resp) == 0 {
		log.Fatalf("Failed to read response: %v", err)
	}

	fmt.Println(string(resp))
}

// buildRequest frames a request exactly the way internal/wire.ReadRequest
// expects to parse it: request line, a single Content-Length header, a
// blank line, then the body.
func buildRequest(method, path, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", method, path)
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
