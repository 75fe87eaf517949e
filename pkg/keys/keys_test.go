package keys_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/measures/pkg/keys"
)

var _ = Describe("KeyManager", func() {
	var (
		tmpDir   string
		privPath string
		pubPath  string
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		privPath = filepath.Join(tmpDir, "private_key.pem")
		pubPath = filepath.Join(tmpDir, "public_key.pem")
	})

	Describe("EnsureKeyPair", func() {
		It("generates both files when neither exists", func() {
			generated, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(generated).To(BeTrue())

			Expect(privPath).To(BeAnExistingFile())
			Expect(pubPath).To(BeAnExistingFile())
		})

		It("removes the private key when the public key cannot be written", func() {
			// A dangling symlink reads as absent but cannot be created with O_EXCL.
			Expect(os.Symlink(filepath.Join(tmpDir, "missing", "target.pem"), pubPath)).To(Succeed())

			generated, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(generated).To(BeFalse())
			var genErr *keys.KeyGenError
			Expect(errors.As(err, &genErr)).To(BeTrue())
			Expect(genErr.Path).To(Equal(pubPath))
			Expect(privPath).NotTo(BeAnExistingFile())

			Expect(os.Remove(pubPath)).To(Succeed())
			generated, err = keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(generated).To(BeTrue())
		})

		It("writes the private key with owner-only permissions", func() {
			_, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())

			info, err := os.Stat(privPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("writes standard PEM blocks", func() {
			_, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())

			privData, err := os.ReadFile(privPath)
			Expect(err).NotTo(HaveOccurred())
			block, _ := pem.Decode(privData)
			Expect(block).NotTo(BeNil())
			Expect(block.Type).To(Equal("RSA PRIVATE KEY"))

			pubData, err := os.ReadFile(pubPath)
			Expect(err).NotTo(HaveOccurred())
			block, _ = pem.Decode(pubData)
			Expect(block).NotTo(BeNil())
			Expect(block.Type).To(Equal("PUBLIC KEY"))
		})

		It("generates 2048-bit keys with exponent 65537", func() {
			_, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())

			kp, err := keys.LoadKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(kp.Private.N.BitLen()).To(Equal(keys.DefaultBits))
			Expect(kp.Public.E).To(Equal(65537))
		})

		It("leaves both files unchanged when called twice", func() {
			_, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())

			privBefore, err := os.ReadFile(privPath)
			Expect(err).NotTo(HaveOccurred())
			pubBefore, err := os.ReadFile(pubPath)
			Expect(err).NotTo(HaveOccurred())

			generated, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(generated).To(BeFalse())

			Expect(os.ReadFile(privPath)).To(Equal(privBefore))
			Expect(os.ReadFile(pubPath)).To(Equal(pubBefore))
		})

		It("does nothing when only one of the files exists", func() {
			Expect(os.WriteFile(pubPath, []byte("placeholder"), 0o644)).To(Succeed())

			generated, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(generated).To(BeFalse())
			Expect(privPath).NotTo(BeAnExistingFile())
			Expect(os.ReadFile(pubPath)).To(Equal([]byte("placeholder")))
		})

		It("creates missing parent directories", func() {
			nestedPriv := filepath.Join(tmpDir, "nested", "keys", "private_key.pem")
			nestedPub := filepath.Join(tmpDir, "nested", "keys", "public_key.pem")

			generated, err := keys.EnsureKeyPair(nestedPriv, nestedPub)
			Expect(err).NotTo(HaveOccurred())
			Expect(generated).To(BeTrue())
			Expect(nestedPriv).To(BeAnExistingFile())
		})
	})

	Describe("LoadKeyPair", func() {
		It("loads a generated pair that verifies", func() {
			_, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())

			kp, err := keys.LoadKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(kp.Verify()).To(Succeed())
		})

		It("fails with KeyLoadError when the private key is missing", func() {
			_, err := keys.LoadKeyPair(privPath, pubPath)

			var loadErr *keys.KeyLoadError
			Expect(errors.As(err, &loadErr)).To(BeTrue())
			Expect(loadErr.Path).To(Equal(privPath))
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})

		It("fails with KeyLoadError on malformed PEM", func() {
			_, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(os.WriteFile(pubPath, []byte("not a key"), 0o644)).To(Succeed())

			_, err = keys.LoadKeyPair(privPath, pubPath)

			var loadErr *keys.KeyLoadError
			Expect(errors.As(err, &loadErr)).To(BeTrue())
			Expect(loadErr.Path).To(Equal(pubPath))
		})

		It("fails with KeyLoadError on a corrupt DER body", func() {
			bad := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: []byte{0x01, 0x02}})
			Expect(os.WriteFile(privPath, bad, 0o600)).To(Succeed())

			_, err := keys.LoadPrivateKey(privPath)

			var loadErr *keys.KeyLoadError
			Expect(errors.As(err, &loadErr)).To(BeTrue())
		})

		It("accepts PKCS#8 private keys", func() {
			priv, err := rsa.GenerateKey(rand.Reader, 2048)
			Expect(err).NotTo(HaveOccurred())
			der, err := x509.MarshalPKCS8PrivateKey(priv)
			Expect(err).NotTo(HaveOccurred())
			data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
			Expect(os.WriteFile(privPath, data, 0o600)).To(Succeed())

			loaded, err := keys.LoadPrivateKey(privPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Equal(priv)).To(BeTrue())
		})
	})

	Describe("Verify", func() {
		It("reports a mismatched pair", func() {
			_, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())

			otherPriv := filepath.Join(tmpDir, "other_private.pem")
			otherPub := filepath.Join(tmpDir, "other_public.pem")
			_, err = keys.EnsureKeyPair(otherPriv, otherPub)
			Expect(err).NotTo(HaveOccurred())

			kp, err := keys.LoadKeyPair(privPath, otherPub)
			Expect(err).NotTo(HaveOccurred())
			Expect(kp.Verify()).To(MatchError(keys.ErrKeyMismatch))
		})
	})

	Describe("Fingerprint", func() {
		It("is stable for the same public key", func() {
			_, err := keys.EnsureKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())

			kp1, err := keys.LoadKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())
			kp2, err := keys.LoadKeyPair(privPath, pubPath)
			Expect(err).NotTo(HaveOccurred())

			fp1, err := kp1.Fingerprint()
			Expect(err).NotTo(HaveOccurred())
			fp2, err := kp2.Fingerprint()
			Expect(err).NotTo(HaveOccurred())
			Expect(fp1).To(HaveLen(64))
			Expect(fp1).To(Equal(fp2))
		})
	})
})
