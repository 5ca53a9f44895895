package s3

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
)

func TestStartChildSpan(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should not start span without parent", func(t *testing.T) {
		Expect(startChildSpan(nil, "get-object", "a")).To(BeNil())
		Expect(startChildSpan(context.Background(), "get-object", "a")).To(BeNil())
	})

	t.Run("should start child span of the span in context", func(t *testing.T) {
		tracer := mocktracer.New()
		parent := tracer.StartSpan("parent")
		ctx := opentracing.ContextWithSpan(context.Background(), parent)

		sp := startChildSpan(ctx, "put-object", "documents/a.pdf")
		Expect(sp).ToNot(BeNil())
		sp.Finish()
		parent.Finish()

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(2))
		Expect(spans[0].OperationName).To(Equal("put-object"))
		Expect(spans[0].Tag("object-key")).To(Equal("documents/a.pdf"))
		Expect(spans[0].ParentID).To(Equal(parent.(*mocktracer.MockSpan).SpanContext.SpanID))
	})
}
