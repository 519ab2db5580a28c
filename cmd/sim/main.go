package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
	"github.com/rubentrancoso/energy-trade/internal/service"
)

// The simulator drives a running order service end to end: a batch of
// crossing orders, expiration edge cases and a cancellation scenario,
// then dumps the final book for inspection.

var (
	orderURL   = flag.String("orders", "http://localhost:8080/orders", "order service endpoint")
	pricingURL = flag.String("pricing", "http://localhost:8090/price", "pricing endpoint")
)

var client = &http.Client{Timeout: 10 * time.Second}

func main() {
	flag.Parse()

	fmt.Println("requesting current market price...")
	if quote, err := fetchQuote(); err != nil {
		fmt.Fprintf(os.Stderr, "pricing unavailable: %v\n", err)
	} else {
		fmt.Printf("market price: %.2f %s\n", quote.Value, quote.Unit)
	}

	runStandardOrders()
	runExpirationEdgeCases()
	runCancellationScenario()

	fmt.Println("\nfinal order list:")
	dumpOrders()
	fmt.Println("simulation completed")
}

func runStandardOrders() {
	fmt.Println("\nsending standard test orders...")
	in1h := time.Now().Add(time.Hour)

	batch := []service.CreateOrderRequest{
		{Side: "BUY", LimitPrice: 80, Volume: 10, ExpiresAt: in1h},
		{Side: "SELL", LimitPrice: 120, Volume: 5, ExpiresAt: in1h},
		{Side: "BUY", LimitPrice: 110, Volume: 7, ExpiresAt: in1h},
		{Side: "SELL", LimitPrice: 100, Volume: 3, ExpiresAt: in1h},
		{Side: "SELL", LimitPrice: 90, Volume: 5, ExpiresAt: in1h},
		{Side: "BUY", LimitPrice: 95, Volume: 5, ExpiresAt: in1h},
		// Zero and negative volumes must be rejected with a 400.
		{Side: "BUY", LimitPrice: 100, Volume: 0, ExpiresAt: in1h},
		{Side: "SELL", LimitPrice: 100, Volume: -5, ExpiresAt: in1h},
		{Side: "SELL", LimitPrice: 1000000, Volume: 1, ExpiresAt: in1h},
		{Side: "BUY", LimitPrice: 0.01, Volume: 1, ExpiresAt: in1h},
		{Side: "SELL", LimitPrice: 100, Volume: 5, ExpiresAt: in1h},
		{Side: "BUY", LimitPrice: 100, Volume: 5, ExpiresAt: in1h},
		{Side: "BUY", LimitPrice: 100, Volume: 9999999, ExpiresAt: in1h},
		{Side: "SELL", LimitPrice: 95, Volume: 9999999, ExpiresAt: in1h},
	}

	for i, req := range batch {
		order, status, err := createOrder(req)
		switch {
		case err != nil:
			fmt.Printf("  [%02d] request failed: %v\n", i, err)
		case status != http.StatusOK:
			fmt.Printf("  [%02d] rejected (%d): %s %.2f x %.2f\n", i, status, req.Side, req.LimitPrice, req.Volume)
		default:
			fmt.Printf("  [%02d] %s %s %.2f x %.2f -> %s (executed %.2f)\n",
				i, order.ID, order.Side, order.LimitPrice, order.Volume, order.Status, order.ExecutedVolume)
		}
	}
}

func runExpirationEdgeCases() {
	fmt.Println("\nsending expiration edge cases...")

	// Already expired at creation: must become EXPIRED without matching.
	expired := service.CreateOrderRequest{
		Side: "BUY", LimitPrice: 100, Volume: 5, ExpiresAt: time.Now().Add(-time.Hour),
	}
	order, status, err := createOrder(expired)
	if err != nil || status != http.StatusOK {
		fmt.Printf("  expired-order creation failed (status %d, err %v)\n", status, err)
		return
	}
	fmt.Printf("  pre-expired order %s -> %s\n", order.ID, order.Status)

	// Expiring in a moment: stays PENDING until the sweeper catches it.
	shortLived := service.CreateOrderRequest{
		Side: "BUY", LimitPrice: 0.001, Volume: 1, ExpiresAt: time.Now().Add(2 * time.Second),
	}
	if order, status, err = createOrder(shortLived); err == nil && status == http.StatusOK {
		fmt.Printf("  short-lived order %s -> %s (sweeper will expire it)\n", order.ID, order.Status)
	}
}

func runCancellationScenario() {
	fmt.Println("\nrunning cancellation scenario...")

	req := service.CreateOrderRequest{
		Side: "BUY", LimitPrice: 0.001, Volume: 2, ExpiresAt: time.Now().Add(time.Hour),
	}
	order, status, err := createOrder(req)
	if err != nil || status != http.StatusOK {
		fmt.Printf("  setup order failed (status %d, err %v)\n", status, err)
		return
	}

	cancelled, status := deleteOrder(order.ID)
	fmt.Printf("  cancel %s -> %d (%s)\n", order.ID, status, cancelled.Status)

	// Second cancel must be rejected, unknown id must be a 404.
	_, status = deleteOrder(order.ID)
	fmt.Printf("  double cancel -> %d (expect 400)\n", status)
	_, status = deleteOrder("00000000-0000-0000-0000-000000000000")
	fmt.Printf("  cancel unknown -> %d (expect 404)\n", status)
}

func fetchQuote() (domain.PriceQuote, error) {
	var quote domain.PriceQuote
	resp, err := client.Get(*pricingURL)
	if err != nil {
		return quote, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return quote, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	err = json.NewDecoder(resp.Body).Decode(&quote)
	return quote, err
}

func createOrder(req service.CreateOrderRequest) (domain.Order, int, error) {
	var order domain.Order
	body, err := json.Marshal(req)
	if err != nil {
		return order, 0, err
	}
	resp, err := client.Post(*orderURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return order, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		err = json.NewDecoder(resp.Body).Decode(&order)
	}
	return order, resp.StatusCode, err
}

func deleteOrder(id string) (domain.Order, int) {
	var order domain.Order
	req, err := http.NewRequest(http.MethodDelete, *orderURL+"/"+id, nil)
	if err != nil {
		return order, 0
	}
	resp, err := client.Do(req)
	if err != nil {
		return order, 0
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		json.NewDecoder(resp.Body).Decode(&order)
	}
	return order, resp.StatusCode
}

func dumpOrders() {
	resp, err := client.Get(*orderURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list orders: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}
