package history_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/measures/pkg/envelope"
	"github.com/papercomputeco/measures/pkg/history"
	"github.com/papercomputeco/measures/pkg/logger"
)

var _ = Describe("Store", func() {
	var (
		tmpDir string
		path   string
		store  *history.Store
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		path = filepath.Join(tmpDir, "secure_history.enc")
		store = history.NewStore(path, logger.Nop())
	})

	Describe("Append and Entries", func() {
		It("starts empty", func() {
			Expect(store.Len()).To(Equal(0))
			Expect(store.Entries()).To(BeEmpty())
		})

		It("keeps entries in insertion order", func() {
			store.Append(history.Entry{Sequence: "aa", Processed: []int{1}})
			store.Append(history.Entry{Sequence: "abbcc", Processed: []int{2, 6}})

			entries := store.Entries()
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Sequence).To(Equal("aa"))
			Expect(entries[1].Processed).To(Equal([]int{2, 6}))
		})

		It("does not expose internal state through returned slices", func() {
			processed := []int{2, 6}
			store.Append(history.Entry{Sequence: "abbcc", Processed: processed})
			processed[0] = 99

			entries := store.Entries()
			entries[0].Processed[1] = 99

			Expect(store.Entries()[0].Processed).To(Equal([]int{2, 6}))
		})

		It("does not persist on append", func() {
			store.Append(history.Entry{Sequence: "aa", Processed: []int{1}})
			Expect(path).NotTo(BeAnExistingFile())
		})

		It("serializes concurrent appends", func() {
			var wg sync.WaitGroup
			for i := range 50 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					store.Append(history.Entry{Sequence: fmt.Sprintf("seq%d", i), Processed: []int{i}})
				}()
			}
			wg.Wait()

			Expect(store.Len()).To(Equal(50))
		})
	})

	Describe("Save and Load", func() {
		It("round-trips the log through an encrypted file", func() {
			store.Append(history.Entry{Sequence: "aa", Processed: []int{1}})
			store.Append(history.Entry{Sequence: "abbcc", Processed: []int{2, 6}})
			Expect(store.Save(&testKey.PublicKey)).To(Succeed())

			restored := history.NewStore(path, logger.Nop())
			result := restored.Load(testKey)
			Expect(result.Status).To(Equal(history.LoadStatusLoaded))
			Expect(result.OK()).To(BeTrue())
			Expect(result.Count).To(Equal(2))
			Expect(restored.Entries()).To(Equal(store.Entries()))
		})

		It("writes the envelope JSON format", func() {
			store.Append(history.Entry{Sequence: "a", Processed: []int{0}})
			Expect(store.Save(&testKey.PublicKey)).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())

			var fields map[string]string
			Expect(json.Unmarshal(data, &fields)).To(Succeed())
			Expect(fields).To(HaveKey("encrypted_key"))
			Expect(fields).To(HaveKey("encrypted_data"))

			plaintext, err := envelope.Decrypt(data, testKey)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(plaintext)).To(Equal(`[{"sequence":"a","processed":[0]}]`))
		})

		It("saves an empty log as an empty JSON array", func() {
			Expect(store.Save(&testKey.PublicKey)).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			plaintext, err := envelope.Decrypt(data, testKey)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(plaintext)).To(Equal("[]"))
		})

		It("overwrites the whole file on every save", func() {
			store.Append(history.Entry{Sequence: "aa", Processed: []int{1}})
			Expect(store.Save(&testKey.PublicKey)).To(Succeed())
			first, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Save(&testKey.PublicKey)).To(Succeed())
			second, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())

			// A fresh data key per save means the bytes always differ.
			Expect(second).NotTo(Equal(first))

			restored := history.NewStore(path, logger.Nop())
			Expect(restored.Load(testKey).Count).To(Equal(1))
		})

		It("restricts the history file to the owner", func() {
			Expect(store.Save(&testKey.PublicKey)).To(Succeed())

			info, err := os.Stat(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("leaves no temp files behind", func() {
			Expect(store.Save(&testKey.PublicKey)).To(Succeed())

			files, err := os.ReadDir(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(HaveLen(1))
		})

		It("returns a SaveError when the file cannot be written", func() {
			blocker := filepath.Join(tmpDir, "blocker")
			Expect(os.WriteFile(blocker, []byte("x"), 0o600)).To(Succeed())

			bad := history.NewStore(filepath.Join(blocker, "history.enc"), logger.Nop())
			err := bad.Save(&testKey.PublicKey)

			var saveErr *history.SaveError
			Expect(errors.As(err, &saveErr)).To(BeTrue())
		})
	})

	Describe("Load failure handling", func() {
		BeforeEach(func() {
			store.Append(history.Entry{Sequence: "stale", Processed: []int{0}})
		})

		It("yields an empty log when the file is missing", func() {
			result := store.Load(testKey)
			Expect(result.Status).To(Equal(history.LoadStatusMissing))
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(store.Len()).To(Equal(0))
		})

		It("yields an empty log when the file is not an envelope", func() {
			Expect(os.WriteFile(path, []byte("garbage"), 0o600)).To(Succeed())

			result := store.Load(testKey)
			Expect(result.Status).To(Equal(history.LoadStatusCorrupt))
			Expect(result.OK()).To(BeFalse())

			var decErr *envelope.DecryptError
			Expect(errors.As(result.Err, &decErr)).To(BeTrue())
			Expect(store.Len()).To(Equal(0))
		})

		It("yields an empty log when the ciphertext was tampered with", func() {
			other := history.NewStore(path, logger.Nop())
			other.Append(history.Entry{Sequence: "aa", Processed: []int{1}})
			Expect(other.Save(&testKey.PublicKey)).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			msg, err := envelope.Unmarshal(data)
			Expect(err).NotTo(HaveOccurred())
			msg.Ciphertext[len(msg.Ciphertext)-1] ^= 0x01
			tampered, err := msg.Marshal()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.WriteFile(path, tampered, 0o600)).To(Succeed())

			result := store.Load(testKey)
			Expect(result.Status).To(Equal(history.LoadStatusCorrupt))
			Expect(store.Len()).To(Equal(0))
		})

		It("yields an empty log when the file was sealed for another key", func() {
			otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
			Expect(err).NotTo(HaveOccurred())

			other := history.NewStore(path, logger.Nop())
			other.Append(history.Entry{Sequence: "aa", Processed: []int{1}})
			Expect(other.Save(&otherKey.PublicKey)).To(Succeed())

			result := store.Load(testKey)
			Expect(result.Status).To(Equal(history.LoadStatusCorrupt))
			Expect(store.Len()).To(Equal(0))
		})

		It("yields an empty log when the decrypted payload is not a list", func() {
			sealed, err := envelope.Encrypt([]byte(`{"sequence":"aa"}`), &testKey.PublicKey)
			Expect(err).NotTo(HaveOccurred())
			Expect(os.WriteFile(path, sealed, 0o600)).To(Succeed())

			result := store.Load(testKey)
			Expect(result.Status).To(Equal(history.LoadStatusCorrupt))
			Expect(result.Err.Error()).To(ContainSubstring("decoding history"))
			Expect(store.Len()).To(Equal(0))
		})
	})

	Describe("Persist", func() {
		It("logs and swallows save failures", func() {
			var buf bytes.Buffer
			blocker := filepath.Join(tmpDir, "blocker")
			Expect(os.WriteFile(blocker, []byte("x"), 0o600)).To(Succeed())

			bad := history.NewStore(filepath.Join(blocker, "history.enc"), logger.New(logger.WithWriter(&buf)))
			Expect(func() { bad.Persist(&testKey.PublicKey) }).NotTo(Panic())
			Expect(buf.String()).To(ContainSubstring("failed to save secure history"))
		})

		It("writes the file on success", func() {
			store.Append(history.Entry{Sequence: "aa", Processed: []int{1}})
			store.Persist(&testKey.PublicKey)
			Expect(path).To(BeAnExistingFile())
		})
	})
})

var _ = Describe("LoadStatus", func() {
	It("has readable names", func() {
		Expect(history.LoadStatusLoaded.String()).To(Equal("loaded"))
		Expect(history.LoadStatusMissing.String()).To(Equal("missing"))
		Expect(history.LoadStatusCorrupt.String()).To(Equal("corrupt"))
	})
})
