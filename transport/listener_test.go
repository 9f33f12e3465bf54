package transport_test

import (
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/reactor"
	"github.com/luma/beacon/stream"
	"github.com/luma/beacon/transport"
)

var _ = Describe("Listener", func() {
	It("accepts a connection, registers it with the reactor, and dispatches its first packet", func() {
		r, err := reactor.New(zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()
		Expect(r.SetTickNanos(uint64(5 * time.Millisecond))).To(Succeed())

		var mu sync.Mutex
		var receivedBodies [][]byte
		onData := func(c *transport.Connection, body stream.Reader) error {
			buf := make([]byte, 4)
			if err := body.Read(buf); err != nil {
				return err
			}
			mu.Lock()
			receivedBodies = append(receivedBodies, buf)
			mu.Unlock()
			return nil
		}

		ln, err := transport.NewListener(r, transport.Options{
			Host: "127.0.0.1",
			Port: 0,
			Log:  zap.NewNop(),
		}, onData)
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		Expect(r.Insert(ln)).To(Succeed())

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 20; i++ {
				if err := r.Execute(); err != nil {
					return
				}
				mu.Lock()
				n := len(receivedBodies)
				mu.Unlock()
				if n > 0 {
					return
				}
			}
		}()

		conn, err := net.Dial("tcp", ln.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write(frame([]byte("ping")))
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() int {
			mu.Lock()
			defer mu.Unlock()
			return len(receivedBodies)
		}, "2s", "10ms").Should(Equal(1))

		<-done

		mu.Lock()
		defer mu.Unlock()
		Expect(receivedBodies[0]).To(Equal([]byte("ping")))
	})
})
