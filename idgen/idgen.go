package idgen

import (
	"net"
	"os"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

// NewWorker creates a sonyflake worker. The machine id is taken from the lower 16 bits of the
// first private IPv4 address, or from the process id when the host has none.
func NewWorker() *sonyflake.Sonyflake {
	return sonyflake.NewSonyflake(sonyflake.Settings{MachineID: machineID})
}

func NextID(idWorker *sonyflake.Sonyflake) types.ID {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}

func machineID() (uint16, error) {
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() {
				continue
			}
			ip := ipnet.IP.To4()
			if ip != nil && isPrivateIPv4(ip) {
				return uint16(ip[2])<<8 + uint16(ip[3]), nil
			}
		}
	}
	return uint16(os.Getpid()), nil
}

func isPrivateIPv4(ip net.IP) bool {
	return ip[0] == 10 || ip[0] == 172 && (ip[1] >= 16 && ip[1] < 32) || ip[0] == 192 && ip[1] == 168
}
