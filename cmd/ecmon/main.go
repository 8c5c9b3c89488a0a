package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/ectalks/ecdbg/pkg/comm"
	"github.com/ectalks/ecdbg/pkg/comm/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/ecdbg/"
)

func init() {
	if val := os.Getenv("ECDBG_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	bus, err := mqtt.NewBusFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := bus.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	bus.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/meta"):
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/raw/cmd"):
			req, err := comm.DecodeRequest(payload)
			if err != nil {
				log.Printf("%s: bad request: %v", topic, err)
				return
			}
			log.Printf("%s: [%d] %q", topic, req.Seq, req.Text)
		case strings.HasSuffix(topic, "/raw/res"):
			res, err := comm.DecodeResponse(payload)
			if err != nil {
				log.Printf("%s: bad response: %v", topic, err)
				return
			}
			if res.Err != "" {
				log.Printf("%s: [%d] error: %s", topic, res.Seq, res.Err)
				return
			}
			log.Printf("%s: [%d]\n%s", topic, res.Seq, res.Dump)
		default:
			log.Printf("%s: %d bytes", topic, len(payload))
		}
	}))
	<-(chan struct{})(nil)
}
