// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sops wraps SOPS encryption for archived snapshots and configuration
// files. Master keys come from the environment.
package sops

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	sopsapi "github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/aes"
	sopsage "github.com/getsops/sops/v3/age"
	scommon "github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/config"
	"github.com/getsops/sops/v3/decrypt"
	"github.com/getsops/sops/v3/gcpkms"
	skeys "github.com/getsops/sops/v3/keys"
	awskms "github.com/getsops/sops/v3/kms"
	jsonstore "github.com/getsops/sops/v3/stores/json"
	"github.com/getsops/sops/v3/version"
)

const (
	EnvGcpKmsResourceID = "PARLMEMBERS_GCP_KMS_RESOURCE_ID"
	EnvAwsKmsKeyArns    = "PARLMEMBERS_AWS_KMS_KEY_ARNS"
	EnvAwsKmsProfile    = "PARLMEMBERS_AWS_KMS_PROFILE"
	// Decryption reads the age identity from SOPS_AGE_KEY or SOPS_AGE_KEY_FILE
	EnvAgeRecipients = "PARLMEMBERS_AGE_RECIPIENTS"
)

var ErrAlreadyEncrypted = errors.New("already encrypted")

// Enabled reports whether any master key is configured for encryption
func Enabled() bool {
	for _, src := range keySources {
		if os.Getenv(src.env) != "" {
			return true
		}
	}
	return false
}

// IsEncrypted reports whether data is a SOPS JSON document
func IsEncrypted(data []byte) bool {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	_, ok := doc["sops"]
	return ok
}

// Decrypt decrypts a value produced by Encrypt
func Decrypt(data []byte) ([]byte, error) {
	return DecryptFormat(data, "binary")
}

// DecryptFormat decrypts a SOPS document in the given store format, such as
// "yaml" or "json"
func DecryptFormat(data []byte, format string) ([]byte, error) {
	ret, err := decrypt.Data(data, format)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Encrypt wraps arbitrary bytes in a SOPS binary document
func Encrypt(data []byte) ([]byte, error) {
	storeConfig := &config.JSONBinaryStoreConfig{}
	input := jsonstore.NewBinaryStore(storeConfig)
	output := jsonstore.NewBinaryStore(storeConfig)

	branches, err := input.LoadPlainFile(data)
	if err != nil {
		return nil, fmt.Errorf("error loading data: %w", err)
	}
	if IsEncrypted(data) {
		return nil, ErrAlreadyEncrypted
	}

	tree := sopsapi.Tree{Branches: branches}
	keyGroups, err := getMasterKeyGroupsFromEnv()
	if err != nil {
		return nil, err
	}
	tree.Metadata = sopsapi.Metadata{
		KeyGroups: keyGroups,
		Version:   version.Version,
	}

	dataKey, errs := tree.GenerateDataKey()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed generating data key: %v", errs)
	}
	if err := scommon.EncryptTree(scommon.EncryptTreeOpts{
		DataKey: dataKey,
		Tree:    &tree,
		Cipher:  aes.NewCipher(),
	}); err != nil {
		return nil, fmt.Errorf("failed encrypt: %w", err)
	}

	encrypted, err := output.EmitEncryptedFile(tree)
	if err != nil {
		return nil, fmt.Errorf("failed output: %w", err)
	}
	return encrypted, nil
}

// keySources maps each env var to the master keys it names. Each source
// forms its own key group.
var keySources = []struct {
	keys func(string) ([]skeys.MasterKey, error)
	env  string
}{
	{
		env: EnvGcpKmsResourceID,
		keys: func(v string) ([]skeys.MasterKey, error) {
			return masterKeys(gcpkms.MasterKeysFromResourceIDString(v)), nil
		},
	},
	{
		env: EnvAwsKmsKeyArns,
		keys: func(v string) ([]skeys.MasterKey, error) {
			profile := os.Getenv(EnvAwsKmsProfile)
			return masterKeys(awskms.MasterKeysFromArnString(v, nil, profile)), nil
		},
	},
	{
		env: EnvAgeRecipients,
		keys: func(v string) ([]skeys.MasterKey, error) {
			keys, err := sopsage.MasterKeysFromRecipients(v)
			if err != nil {
				return nil, fmt.Errorf("age recipients: %w", err)
			}
			return masterKeys(keys), nil
		},
	},
}

func masterKeys[K skeys.MasterKey](keys []K) []skeys.MasterKey {
	ret := make([]skeys.MasterKey, 0, len(keys))
	for _, k := range keys {
		ret = append(ret, k)
	}
	return ret
}

func getMasterKeyGroupsFromEnv() ([]sopsapi.KeyGroup, error) {
	var keyGroups []sopsapi.KeyGroup
	for _, src := range keySources {
		v := os.Getenv(src.env)
		if v == "" {
			continue
		}
		keys, err := src.keys(v)
		if err != nil {
			return nil, err
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}
	if len(keyGroups) == 0 {
		return nil, fmt.Errorf(
			"SOPS requires at least one master key to encrypt: set %s, %s or %s",
			EnvGcpKmsResourceID,
			EnvAwsKmsKeyArns,
			EnvAgeRecipients,
		)
	}
	return keyGroups, nil
}
