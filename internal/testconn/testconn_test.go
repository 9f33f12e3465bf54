package testconn_test

import (
	"time"

	"go.uber.org/zap"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/internal/testconn"
	"github.com/luma/beacon/reactor"
	"github.com/luma/beacon/stream"
	"github.com/luma/beacon/transport"
)

var _ = Describe("Conn", func() {
	It("round-trips a frame through a real Listener", func() {
		r, err := reactor.New(zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()
		Expect(r.SetTickNanos(uint64(5 * time.Millisecond))).To(Succeed())

		echo := func(c *transport.Connection, body stream.Reader) error {
			buf := make([]byte, 9)
			if err := body.Read(buf); err != nil {
				return err
			}
			out := stream.NewBufferOutput()
			if err := out.Write(buf); err != nil {
				return err
			}
			return c.WriteShared(out.LengthPrefixed())
		}

		ln, err := transport.NewListener(r, transport.Options{
			Host: "127.0.0.1",
			Port: 0,
			Log:  zap.NewNop(),
		}, echo)
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()
		Expect(r.Insert(ln)).To(Succeed())

		stop := make(chan struct{})
		go func() {
			for {
				select {
				case <-stop:
					return
				default:
					r.Execute()
				}
			}
		}()
		defer close(stop)

		cx, err := testconn.Dial(ln.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer cx.Close()

		Expect(cx.SendFrame([]byte("roundtrip"))).To(Succeed())

		var got []byte
		Eventually(func() error {
			var err error
			got, err = cx.ReadFrame()
			return err
		}, "2s", "10ms").Should(Succeed())

		Expect(got).To(Equal([]byte("roundtrip")))
	})
})
