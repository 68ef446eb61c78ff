// Command devcluster launches a local multi-node ring for manual
// testing: N containers of a node image, each bound to its own host
// port and pointed at the nodes launched before it as static bootstrap
// peers (the first node gets none and creates the ring). This is
// operational tooling around the ring, not part of the ring itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

func main() {
	image := flag.String("image", "chordring-node:dev", "container image to run for each node")
	count := flag.Int("nodes", 3, "number of nodes to launch")
	basePort := flag.Int("base-port", 9000, "first host port; node i binds base-port+i")
	netName := flag.String("network", "chordring-dev", "docker network all node containers join")
	flag.Parse()

	ctx := context.Background()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		log.Fatalf("devcluster: connect to docker: %v", err)
	}
	defer cli.Close()

	if err := ensureNetwork(ctx, cli, *netName); err != nil {
		log.Fatalf("devcluster: ensure network: %v", err)
	}

	peers := make([]string, *count)
	for i := 0; i < *count; i++ {
		peers[i] = fmt.Sprintf("chordring-node-%d:%d", i, *basePort+i)
	}

	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("chordring-node-%d", i)
		hostPort := *basePort + i
		if err := launchNode(ctx, cli, *image, *netName, name, hostPort, peers[:i]); err != nil {
			log.Fatalf("devcluster: launch %s: %v", name, err)
		}
		log.Printf("devcluster: started %s on host port %d", name, hostPort)
	}
}

func ensureNetwork(ctx context.Context, cli *client.Client, name string) error {
	networks, err := cli.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return fmt.Errorf("list networks: %w", err)
	}
	for _, n := range networks {
		if n.Name == name {
			return nil
		}
	}
	_, err = cli.NetworkCreate(ctx, name, network.CreateOptions{Driver: "bridge"})
	if err != nil {
		return fmt.Errorf("create network %s: %w", name, err)
	}
	return nil
}

func launchNode(ctx context.Context, cli *client.Client, image, netName, name string, hostPort int, peers []string) error {
	containerPort := nat.Port(strconv.Itoa(hostPort) + "/tcp")

	env := []string{
		fmt.Sprintf("CHORDRING_NODE_BIND=0.0.0.0:%d", hostPort),
		fmt.Sprintf("CHORDRING_BOOTSTRAP_PEERS=%s", joinPeers(peers, fmt.Sprintf("%s:%d", name, hostPort))),
	}

	resp, err := cli.ContainerCreate(ctx, &container.Config{
		Image:        image,
		Env:          env,
		ExposedPorts: nat.PortSet{containerPort: struct{}{}},
	}, &container.HostConfig{
		NetworkMode: container.NetworkMode(netName),
		PortBindings: nat.PortMap{
			containerPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(hostPort)}},
		},
	}, nil, nil, name)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	return nil
}

// joinPeers builds a comma-separated static bootstrap list excluding
// self. main passes it only the peers launched before each node, so
// each node is only told about the peers that existed before it.
func joinPeers(peers []string, self string) string {
	out := ""
	for _, p := range peers {
		if p == self {
			continue
		}
		if out != "" {
			out += ","
		}
		out += p
	}
	return out
}

