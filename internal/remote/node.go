package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	libp2p "github.com/libp2p/go-libp2p"
	crypto "github.com/libp2p/go-libp2p/core/crypto"
	libp2p_host "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	peer "github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/sirupsen/logrus"

	"github.com/nmxmxh/memview/utils"
)

// ProtocolID is the stream protocol: one request packet per stream,
// one response packet back.
const ProtocolID = "/memview/1.0.0"

// handleTimeout bounds a single request, watch waits included.
const handleTimeout = 30 * time.Second

// Options configures a node.
type Options struct {
	ListenAddrs  []string
	IdentityPath string
}

// DefaultOptions listens on an ephemeral local TCP port and keeps the
// identity next to the working directory.
func DefaultOptions() Options {
	return Options{
		ListenAddrs:  []string{"/ip4/127.0.0.1/tcp/0"},
		IdentityPath: "node_identity.json",
	}
}

// persistentIdentity is the on-disk form of the node's key.
type persistentIdentity struct {
	PrivKey []byte `json:"priv_key"`
	PeerID  string `json:"peer_id"`
}

// loadOrCreateIdentity reads the key file, generating and saving a
// fresh Ed25519 key when it does not exist yet.
func loadOrCreateIdentity(path string) (crypto.PrivKey, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var id persistentIdentity
		if err := json.Unmarshal(data, &id); err != nil {
			return nil, utils.WrapError(err, "parse identity file")
		}
		priv, err := crypto.UnmarshalPrivateKey(id.PrivKey)
		if err != nil {
			return nil, utils.WrapError(err, "unmarshal private key")
		}
		return priv, nil
	}

	priv, _, err := crypto.GenerateEd25519Key(nil)
	if err != nil {
		return nil, utils.WrapError(err, "generate key")
	}
	pid, err := peer.IDFromPrivateKey(priv)
	if err != nil {
		return nil, utils.WrapError(err, "derive peer id")
	}
	privBytes, err := crypto.MarshalPrivateKey(priv)
	if err != nil {
		return nil, utils.WrapError(err, "marshal private key")
	}
	blob, err := json.Marshal(&persistentIdentity{PrivKey: privBytes, PeerID: pid.String()})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, blob, 0600); err != nil {
		return nil, utils.WrapError(err, "save identity file")
	}
	return priv, nil
}

// Node is a libp2p host answering packet streams against one service.
type Node struct {
	host libp2p_host.Host
	svc  *Service
	log  *logrus.Entry
}

// NewNode starts a host with a persistent identity and wires the
// service's stream handler.
func NewNode(svc *Service, opts Options) (*Node, error) {
	priv, err := loadOrCreateIdentity(opts.IdentityPath)
	if err != nil {
		return nil, err
	}
	host, err := libp2p.New(
		libp2p.Identity(priv),
		libp2p.ListenAddrStrings(opts.ListenAddrs...),
	)
	if err != nil {
		return nil, utils.WrapError(err, "start host")
	}
	return Attach(host, svc), nil
}

// Attach wires the service onto an existing host. Tests use it with
// mocknet peers; NewNode uses it with a real one.
func Attach(host libp2p_host.Host, svc *Service) *Node {
	n := &Node{
		host: host,
		svc:  svc,
		log:  utils.ComponentLogger("remote").WithField("peer", host.ID().String()),
	}
	host.SetStreamHandler(ProtocolID, n.handleStream)
	return n
}

// Host exposes the underlying libp2p host.
func (n *Node) Host() libp2p_host.Host {
	return n.host
}

// Addrs returns the node's dialable multiaddrs, peer ID included.
func (n *Node) Addrs() []string {
	var out []string
	for _, a := range n.host.Addrs() {
		out = append(out, fmt.Sprintf("%s/p2p/%s", a, n.host.ID()))
	}
	return out
}

// Close shuts the host down.
func (n *Node) Close() error {
	return n.host.Close()
}

func (n *Node) handleStream(s network.Stream) {
	defer s.Close()
	data, err := io.ReadAll(s)
	if err != nil {
		n.log.WithError(err).Warn("read request stream")
		return
	}
	req, err := Decode(data)
	if err != nil {
		n.log.WithError(err).Warn("decode request")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	resp := n.svc.Handle(ctx, req)

	if _, err := s.Write(resp.Encode()); err != nil {
		n.log.WithError(err).Warn("write response stream")
	}
}

// Send dials a peer by multiaddr and exchanges one packet.
func (n *Node) Send(ctx context.Context, peerAddr string, pkt *Packet) (*Packet, error) {
	maddr, err := ma.NewMultiaddr(peerAddr)
	if err != nil {
		return nil, utils.WrapError(err, "parse peer address")
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return nil, utils.WrapError(err, "peer address info")
	}
	if err := n.host.Connect(ctx, *info); err != nil {
		return nil, utils.WrapError(err, "connect")
	}
	return n.SendTo(ctx, info.ID, pkt)
}

// SendTo exchanges one packet with an already-connected peer.
func (n *Node) SendTo(ctx context.Context, pid peer.ID, pkt *Packet) (*Packet, error) {
	stream, err := n.host.NewStream(ctx, pid, ProtocolID)
	if err != nil {
		return nil, utils.WrapError(err, "open stream")
	}
	defer stream.Close()

	if _, err := stream.Write(pkt.Encode()); err != nil {
		return nil, utils.WrapError(err, "write request")
	}
	// Half-close so the handler's read sees EOF and answers.
	if err := stream.CloseWrite(); err != nil {
		return nil, utils.WrapError(err, "close write side")
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, utils.WrapError(err, "read response")
	}
	return Decode(data)
}
