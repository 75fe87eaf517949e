package buildinfo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/measures/pkg/buildinfo"
)

var _ = Describe("buildinfo", func() {
	var version, sha, buildtime string

	BeforeEach(func() {
		version, sha, buildtime = buildinfo.Version, buildinfo.Sha, buildinfo.Buildtime
		DeferCleanup(func() {
			buildinfo.Version, buildinfo.Sha, buildinfo.Buildtime = version, sha, buildtime
		})
	})

	It("defaults to a dev build", func() {
		Expect(buildinfo.IsDev()).To(BeTrue())
		Expect(buildinfo.String()).To(Equal("measures dev (HEAD, built dev)"))
	})

	It("reports stamped values", func() {
		buildinfo.Version = "v0.3.0"
		buildinfo.Sha = "abc1234"
		buildinfo.Buildtime = "2025-01-02"

		Expect(buildinfo.IsDev()).To(BeFalse())
		Expect(buildinfo.String()).To(Equal("measures v0.3.0 (abc1234, built 2025-01-02)"))
	})
})
