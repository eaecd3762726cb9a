// Command venuectl is a thin CLI client for venued: it places or cancels
// orders and prints the reports the server sends back.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"venue/internal/common"
	"venue/internal/wire"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the venue daemon")
	action := flag.String("action", "place", "action to perform: place, cancel, log")

	symbol := flag.String("symbol", "AAPL", "symbol to trade")
	sideStr := flag.String("side", "buy", "order side: buy or sell")
	typeStr := flag.String("type", "limit", "order type: limit or market")
	price := flag.Float64("price", 100.0, "limit price (ignored for market orders)")
	qtyStr := flag.String("qty", "10", "quantity, or comma-separated list to send several orders")
	futures := flag.Bool("futures", false, "route to the futures engine instead of spot")
	clientOrderID := flag.String("client-order-id", "", "client order id (optional)")

	orderID := flag.String("order-id", "", "order id to cancel")

	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *serverAddr)

	go readReports(conn)

	side := common.Buy
	if strings.EqualFold(*sideStr, "sell") {
		side = common.Sell
	}
	orderType := common.Limit
	if strings.EqualFold(*typeStr, "market") {
		orderType = common.Market
	}

	switch strings.ToLower(*action) {
	case "place":
		for _, qty := range parseQuantities(*qtyStr) {
			msg := wire.NewOrderMessage{
				Symbol:        *symbol,
				Side:          side,
				Type:          orderType,
				HasPrice:      orderType == common.Limit,
				Price:         *price,
				Quantity:      qty,
				IsFutures:     *futures,
				ClientOrderID: *clientOrderID,
			}
			if _, err := conn.Write(msg.Encode()); err != nil {
				log.Printf("failed to send order (qty %.4f): %v", qty, err)
				continue
			}
			fmt.Printf("-> sent %s %s order: %s %.4f @ %.2f\n", strings.ToUpper(*typeStr), strings.ToUpper(*sideStr), *symbol, qty, *price)
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if *orderID == "" {
			log.Fatal("-order-id is required for cancel")
		}
		msg := wire.CancelOrderMessage{Symbol: *symbol, OrderID: *orderID, IsFutures: *futures}
		if _, err := conn.Write(msg.Encode()); err != nil {
			log.Fatalf("failed to send cancel: %v", err)
		}
		fmt.Printf("-> sent cancel for order %s\n", *orderID)

	case "log":
		msg := wire.LogBookMessage{}
		if _, err := conn.Write(msg.Encode()); err != nil {
			log.Fatalf("failed to send log request: %v", err)
		}
		fmt.Println("-> sent log request")

	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("\nlistening for reports... (ctrl-c to exit)")
	select {}
}

func parseQuantities(input string) []float64 {
	parts := strings.Split(input, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseFloat(p, 64); err == nil {
			out = append(out, val)
		} else {
			log.Printf("warning: invalid quantity %q, skipping", p)
		}
	}
	return out
}

func readReports(conn net.Conn) {
	buf := make([]byte, 4*1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}
		report, err := wire.DecodeReport(buf[:n])
		if err != nil {
			log.Printf("failed to decode report: %v", err)
			continue
		}
		printReport(report)
	}
}

func printReport(r wire.Report) {
	if r.Type == wire.ErrorReport {
		fmt.Printf("\n[error] %s\n", r.Err)
		return
	}
	fmt.Printf("\n[%s] %s | status=%s qty=%.4f filled=%.4f price=%.2f | order=%s\n",
		strings.ToUpper(r.Symbol), r.Side, r.Status, r.Quantity, r.FilledQty, r.Price, r.OrderID)
}
