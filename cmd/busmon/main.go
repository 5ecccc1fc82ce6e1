package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"os"

	"github.com/quadrover/i2clink/pkg/telemetry"
)

var mqttURL = "mqtt://localhost:1883/i2clink/"

func init() {
	if val := os.Getenv("I2CLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := telemetry.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}

	err = q.Sub("#", func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, string(payload))
	})
	if err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
