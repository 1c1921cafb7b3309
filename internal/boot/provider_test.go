package boot

import (
	"sync"
	"testing"

	clientv3 "go.etcd.io/etcd/client/v3"
)

func TestRegistrationVisibleToClose(t *testing.T) {
	a := &App{}
	if key, lease := a.registration(); key != "" || lease != 0 {
		t.Fatalf("before register = %q %d", key, lease)
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.setRegistration("/services/garden-console/dev/v1/10.0.0.1:8080", clientv3.LeaseID(42))
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if key, lease := a.registration(); (key == "") != (lease == 0) {
				t.Errorf("torn registration %q %d", key, lease)
				return
			}
		}
	}()
	wg.Wait()
	if key, lease := a.registration(); key != "/services/garden-console/dev/v1/10.0.0.1:8080" || lease != 42 {
		t.Fatalf("after register = %q %d", key, lease)
	}
}
