package etcd

import (
	"context"
	"encoding/json"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

type Config struct {
	Endpoints []string
	TTL       int
}

type Client struct{ *clientv3.Client }

// Instance 등록되는 콘솔 인스턴스 정보
type Instance struct {
	InstanceID  string `json:"instance_id"`
	Env         string `json:"env"`
	Version     string `json:"version"`
	Addr        string `json:"addr"`
	Upstream    string `json:"upstream"`
	StartupUnix int64  `json:"startup_unix"`
}

func New(cfg Config) (*Client, error) {
	cli, err := clientv3.New(clientv3.Config{Endpoints: cfg.Endpoints, DialTimeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	return &Client{cli}, nil
}

// Register 임대(lease)에 묶어 키를 쓰고 keepalive 를 유지한다. 해제용 leaseID 를 돌려준다.
func (c *Client) Register(ctx context.Context, key, val string, ttl int64) (clientv3.LeaseID, error) {
	lease, err := c.Client.Grant(ctx, ttl)
	if err != nil {
		return 0, err
	}
	if _, err = c.Client.Put(ctx, key, val, clientv3.WithLease(lease.ID)); err != nil {
		return 0, err
	}
	ch, err := c.Client.KeepAlive(context.Background(), lease.ID)
	if err != nil {
		return 0, err
	}
	go func() {
		for range ch {
		}
	}()
	return lease.ID, nil
}

// Deregister 키 삭제 후 임대 해제. 이미 만료된 경우도 있으므로 오류는 무시한다.
func (c *Client) Deregister(ctx context.Context, key string, leaseID clientv3.LeaseID) error {
	_, _ = c.Client.Delete(ctx, key)
	if leaseID > 0 {
		_, _ = c.Client.Revoke(ctx, leaseID)
	}
	return nil
}

// Discover prefix 아래 등록된 인스턴스. 해석할 수 없는 값은 건너뛴다.
func (c *Client) Discover(ctx context.Context, prefix string) (map[string]Instance, error) {
	resp, err := c.Client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	m := make(map[string]Instance, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var inst Instance
		if err := json.Unmarshal(kv.Value, &inst); err != nil {
			continue
		}
		m[string(kv.Key)] = inst
	}
	return m, nil
}

func (c *Client) Close() error { return c.Client.Close() }
