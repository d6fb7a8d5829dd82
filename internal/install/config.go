// Writes starting-point configuration files for the daemons
package install

import (
	"encoding/json"
	"fmt"
	"ipfee/internal/global"
	"ipfee/internal/receiver"
	"ipfee/internal/sender"
	"net"
	"os"
	"strconv"
)

const templateHeader string = "// %s configuration (JSONC: comments and trailing commas are accepted)\n"

func CreateForwardTemplateConfig(filepath string) (err error) {
	var newCfg sender.JSONConfig
	newCfg.Collector.Address = net.JoinHostPort("::1", strconv.Itoa(global.DefaultCollectorPort))

	newCfg.Forwarder.QueueCapacity = global.DefaultQueueCapacity
	newCfg.Forwarder.RetryInterval = global.DefaultConnectRetryInterval.String()
	newCfg.Forwarder.DialTimeout = global.DefaultDialTimeout.String()
	newCfg.Forwarder.KeepAlive = global.DefaultKeepAlive.String()

	newCfg.Input.Path = "-"
	newCfg.Input.DrainTimeout = global.SendShutdownTimeout.String()

	newCfg.Metrics.MaxAge = "72h"
	newCfg.Metrics.Interval = "5s"
	newCfg.Metrics.QueryServerPort = global.HTTPListenPortSender

	err = writeTemplate(filepath, "Forwarder", newCfg)
	return
}

func CreateCollectTemplateConfig(filepath string) (err error) {
	var newCfg receiver.JSONConfig
	newCfg.Network.Address = "::1"
	newCfg.Network.Port = global.DefaultCollectorPort
	newCfg.Network.MaxConnections = 64

	newCfg.Outputs.Stdout = true
	newCfg.Outputs.StdoutFormat = "text"
	newCfg.Outputs.QueueSize = global.DefaultQueueCapacity
	newCfg.Outputs.BeatsAddress = ""
	newCfg.Outputs.KafkaBrokers = []string{}
	newCfg.Outputs.Timeout = "3s"

	newCfg.Metrics.MaxAge = "72h"
	newCfg.Metrics.Interval = "5s"
	newCfg.Metrics.QueryServerPort = global.HTTPListenPortReceiver

	err = writeTemplate(filepath, "Collector", newCfg)
	return
}

func writeTemplate(filepath string, title string, cfg any) (err error) {
	if filepath == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	confBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling new config: %w", err)
		return
	}
	content := fmt.Sprintf(templateHeader, title) + string(confBytes) + "\n"

	newConfFile, err := os.OpenFile(filepath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer newConfFile.Close()

	_, err = newConfFile.WriteString(content)
	if err != nil {
		err = fmt.Errorf("failed to write config to file: %w", err)
		return
	}
	return
}
